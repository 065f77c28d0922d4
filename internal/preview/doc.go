// Package preview renders extracted rows as a line chart with gonum/plot so
// an operator can eyeball a dataset without a scientific stack.
package preview
