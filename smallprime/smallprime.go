// Package smallprime implements C6: trial division by the first Size odd
// primes (plus 2), accelerated by package mayer's constant-divisor test.
// Grounded on other_examples' getamis-alice/crypto/utils/prime.go packed
// prime-table idiom (a flat table of small primes consulted before falling
// back to a more expensive primality method) and on the original's
// PrimeTrialDivisionMayer.h.
package smallprime

import (
	"github.com/hurchalla/go-factoring/mayer"
	"github.com/hurchalla/go-factoring/montgomery"
)

// Size is the number of odd primes tried before falling back to the next
// stage of the factoring pipeline. 135 matches the original's default: the
// 135th odd prime is 769 and Boundary is 773, so trial division alone
// resolves any factor up to 769 and certifies primality for any survivor
// below 773^2 = 597529.
const Size = 135

// OddPrimes is the table of the first Size odd primes, 3, 5, 7, 11, ....
var OddPrimes [Size]uint64

// Boundary is the first untested prime after OddPrimes -- the value the
// recursive factorizer (package factor) uses to build its
// threshold-always-prime cutoff.
var Boundary uint64

var divisors [Size]mayer.Divisor

func init() {
	primes := montgomery.FirstOddPrimes(Size)
	copy(OddPrimes[:], primes)
	for i, p := range OddPrimes {
		divisors[i] = mayer.NewDivisor(p)
	}
	Boundary = montgomery.NextPrime(OddPrimes[Size-1])
}

// Divide peels factor 2 out of x repeatedly, then each of OddPrimes in
// turn, calling sink once per factor found (with multiplicity). It returns
// the remaining cofactor q and Boundary, so the caller can test q against
// Boundary*Boundary per §4.6's postcondition: if the returned q is 1 the
// factorization is complete; otherwise q has no factor strictly less than
// Boundary.
func Divide(x uint64, sink func(uint64)) (q uint64, boundary uint64) {
	q = x
	for q&1 == 0 {
		sink(2)
		q >>= 1
	}
	for _, dv := range divisors {
		p := dv.D()
		for {
			quotient, divides := mayer.Divides(dv, q)
			if !divides {
				break
			}
			sink(p)
			q = quotient
		}
		if q == 1 {
			return 1, Boundary
		}
	}
	return q, Boundary
}
