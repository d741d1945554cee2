// Package chunker splits raw text into bounded-size segments.
//
// Text is split recursively on an ordered list of separators: paragraph
// breaks first, then line breaks, sentence punctuation, spaces and finally
// individual runes. Each separator stays attached to the end of the piece it
// terminates, so joining the untrimmed pieces yields the original text. Small
// neighbouring pieces are merged back together up to the size bound.
//
// Sizes are measured in runes, not bytes.
package chunker
