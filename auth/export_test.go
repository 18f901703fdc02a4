package auth

var ClassifyExchangeError = classifyExchangeError
