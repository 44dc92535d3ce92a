package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           ttsd API
// @version         0.5.0
// @description     HTTP API for local speech synthesis model lifecycle and synthesis.
//
// @contact.name   ttsd maintainers
// @contact.url    https://github.com/your-org/ttsd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
