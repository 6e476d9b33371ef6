// Package types defines the shared interfaces used across develdirs,
// most importantly the FS seam that lets resolution and cache code be
// exercised against any filesystem implementation.
package types
