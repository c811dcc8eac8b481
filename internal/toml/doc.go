// Package toml implements a lossless, editable TOML document tree.
//
// Parse keeps every byte of the input (comments, blank lines, key spelling,
// spacing and string quoting), so rendering an unmodified document returns the
// original text. Edits touch only the nodes they replace: entries keep their
// indentation, key text and trailing comments, and untouched values keep their
// source form.
//
// Syntax checking, string unescaping and key decoding come from the go-toml
// unstable parser. The package models structure only: it does not reject
// duplicate keys or redefined tables.
package toml
