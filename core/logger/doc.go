// Package logger records what happens in shell sessions as newline delimited
// JSON events and summarizes recorded logs.
package logger
