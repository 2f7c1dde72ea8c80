/*
Package domain contains the core models of the history viewer.

It is kept pure: no I/O and no persistence. Adapters and the session manager build on
these types.

# Key Entities

  - Version: an immutable snapshot of a record (number, author, publish state, field values).
  - CompareSelection: the compare-mode slice of UI state, advanced only by Reduce.
  - Action: the closed set of selection inputs (EnterCompare, SelectVersion, ...).
  - Field: a form field tree node, either a *Leaf or a *Composite.
  - ComparisonDataset: the other version's values, keyed by field name.
*/
package domain
