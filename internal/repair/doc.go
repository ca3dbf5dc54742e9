// Package repair turns integrity findings into proposed change operations.
//
// Operations are plain values. Their ids are content hashes, so planning the
// same snapshot twice yields identical operations. Nothing here decides
// whether an operation may run; that is the governance package's job.
package repair
