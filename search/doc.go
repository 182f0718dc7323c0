// Package search is the public entry point of the vector search core. A
// Service composes a candidate source with the ranking engine; callers only
// ever see ranked result sets or a top match.
package search
