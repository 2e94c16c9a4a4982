// Package presieve runs the single-threaded base sieve.
//
// Run prepares a fresh composite map for the parallel phase:
//
//  1. Evens and multiples of three are marked word by word from fixed patterns.
//  2. 1 is forced composite; 2 and 3 are forced prime.
//  3. Every prime up to the fourth root of the bound strikes its multiples up
//     to the square root of the bound.
//
// Afterwards the map is exact on [1, Sqrt(bound)], which is the oracle the
// segment markers walk to enumerate their seed primes.
package presieve
