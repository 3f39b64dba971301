// Package charts builds comparison charts from normalized observations and
// renders them to PNG with gonum/plot.
package charts
