// Package textutil provides the edit-distance primitives used for fuzzy
// filename matching.
//
// Levenshtein counts single-rune insertions, deletions, and substitutions.
// Similarity scales that distance into [0, 1] against the longer input so
// that 1 means identical and 0 means every position differs. Every fuzzy
// comparison in the pipeline goes through Similarity.
package textutil
