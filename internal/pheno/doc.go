// Package pheno provides the core matrix types shared by the phenotype
// generators and the composition driver.
//
// All matrices are gonum dense matrices with explicit shapes:
//
//   - genotypes, causal variants: samples × variants
//   - kinship: samples × samples
//   - effect components, phenotypes: samples × traits
//   - trait-design and trait covariance matrices: traits × traits
//
// A generator returns a [Component]: a shared and an independent N×P matrix
// (all zero where a side does not apply). [PooledVariance] is the empirical
// variance of every entry of a matrix treated as one sample, the scale the
// rescaling operator works on.
//
// Shape contracts are asserted with [CheckDims] at component boundaries.
package pheno
