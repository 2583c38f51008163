// Package corpus loads the fixed document corpus the knowledge index
// is built over. Sources come from a local directory of markdown files
// or from a GitHub repository tree; either way the corpus is read
// wholesale and rebuilt wholesale on change.
package corpus
