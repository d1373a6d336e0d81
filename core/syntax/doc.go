// Package syntax turns command lines into command trees.
//
// The grammar is a subset of the POSIX shell command language, see
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/V3_chap02.html
//
//  1. The Lexer breaks the input into tokens: words and operators. Quotes,
//     escapes and parameter references are recognized here and kept as the
//     parts of a Word.
//
//  2. The Parser builds simple commands, pipelines and sequences from the
//     tokens. Words of the form NAME=value before the command name become
//     assignments, and redirection operators with their targets are taken
//     off the argument list.
//
//  3. If the first word of a simple command is an unquoted literal naming an
//     alias, the alias is substituted and the result parsed again.
//
// Expansion of words happens later, when the command runs. Compound
// commands, functions, here-documents, globbing and command substitution are
// not supported.
package syntax
