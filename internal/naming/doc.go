// Package naming defines the canonical audio filename space.
//
// A canonical filename is {room}-{entry}-{lang}.mp3 where room and entry are
// normalized tokens and lang is en or vi. Every function here is pure and
// total: any input normalizes to some string. ExtractLanguage is the only
// language suffix detector in the module; other packages call it rather than
// matching suffixes themselves.
package naming
