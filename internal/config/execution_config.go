package config

const (
	executionURLVar          = "JDOODLE_URL"
	executionClientIDVar     = "JDOODLE_CLIENT_ID"
	executionClientSecretVar = "JDOODLE_CLIENT_SECRET"

	defaultExecutionURL = "https://api.jdoodle.com/v1/execute"
)

type ExecutionConfig interface {
	GetExecutionURL() string
	// ExecutionCredentials returns the execution API credentials and whether
	// both are configured. They are optional in every deployment mode.
	ExecutionCredentials() (clientID, clientSecret string, ok bool)
}

type Execution struct {
	url          string
	clientID     Secret
	clientSecret Secret
}

var _ ExecutionConfig = Execution{}

func loadExecution(lookup LookupFunc) Execution {
	return Execution{
		url:          getEnv(lookup, executionURLVar, defaultExecutionURL),
		clientID:     secretFromEnv(lookup, executionClientIDVar),
		clientSecret: secretFromEnv(lookup, executionClientSecretVar),
	}
}

func (e Execution) GetExecutionURL() string {
	return e.url
}

func (e Execution) ExecutionCredentials() (string, string, bool) {
	if !e.clientID.IsPresent() || !e.clientSecret.IsPresent() {
		return "", "", false
	}
	id, _ := e.clientID.Resolve(false)
	secret, _ := e.clientSecret.Resolve(false)
	return id, secret, true
}
