// Package analytics computes the metric catalog of a loaded transaction
// table and aggregates it into chart-ready series.
//
// Each metric maps to one recipe: a grouping key, an ordering policy and a
// chart kind. Sums are exact decimal sums of the Total column.
package analytics
