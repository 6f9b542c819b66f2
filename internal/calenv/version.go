package calenv

// CALENV_VERSION is overridden at link time with -X.
var CALENV_VERSION = "development"
