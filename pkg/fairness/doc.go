// Package fairness computes outcome disparity across the groups of a
// protected attribute.
//
// For each group value observed in the current population, the calculator
// computes the rate of positive predicted outcomes. The disparity score is
// the absolute difference between the highest and lowest group rates, which
// keeps it bounded in [0,1] regardless of group count. Groups smaller than
// the configured minimum fail the computation rather than skewing it.
package fairness
