// Package filesystem provides filesystem implementations for develdirs.
//
// This package contains implementations of the types.FS interface.
package filesystem
