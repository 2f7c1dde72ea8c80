// Package transform turns a form's field tree into a read-only diff view
// against the values of another version.
//
// Composite fields are rebuilt with transformed children in their original
// order. Display-only leaves are copied unchanged. Every data leaf must have
// a comparison value, otherwise the whole transform fails and no tree is
// returned. Protected fields such as the anti-forgery token are rendered as
// an empty placeholder when the comparison data does not carry them.
package transform
