package rcpsp

import "testing"

func TestConstant_EvalAndIntegral(t *testing.T) {
	c := Constant{K: 3}
	if got := c.Eval(100); got != 3 {
		t.Fatalf("Eval = %d, want 3", got)
	}
	got, err := c.Integral(2, 5)
	if err != nil {
		t.Fatalf("Integral: %v", err)
	}
	if got != 9 {
		t.Fatalf("Integral(2,5) = %d, want 9", got)
	}
}

func TestConstant_Integral_InvertedWindow(t *testing.T) {
	c := Constant{K: 1}
	if _, err := c.Integral(5, 2); err == nil {
		t.Fatalf("Integral(5,2) succeeded, want error for inverted window")
	}
}

func TestLinear_EvenWindowIntegral(t *testing.T) {
	l := Linear{Slope: 2, Intercept: 1}
	// ∫[0,4) 2t+1 dt = [t^2+t] from 0 to 4 = 16+4 = 20
	got, err := l.Integral(0, 4)
	if err != nil {
		t.Fatalf("Integral(0,4): %v", err)
	}
	if got != 20 {
		t.Fatalf("Integral(0,4) = %d, want 20", got)
	}
}

func TestLinear_OddWindowRejected(t *testing.T) {
	l := Linear{Slope: 1, Intercept: 0}
	if _, err := l.Integral(0, 3); err == nil {
		t.Fatalf("Integral(0,3) succeeded, want rejection of odd-length window")
	}
}

func TestPolynomial_EvalAndIntegral(t *testing.T) {
	// f(t) = 1 + 2t (Coeffs[0]=1, Coeffs[1]=2)
	p := Polynomial{Coeffs: []int{1, 2}}
	if got := p.Eval(3); got != 7 {
		t.Fatalf("Eval(3) = %d, want 7", got)
	}
	// ∫[0,4) 1+2t dt = [t+t^2] from 0 to 4 = 4+16 = 20
	got, err := p.Integral(0, 4)
	if err != nil {
		t.Fatalf("Integral(0,4): %v", err)
	}
	if got != 20 {
		t.Fatalf("Integral(0,4) = %d, want 20", got)
	}
}

func TestPolynomial_NonExactTermRejected(t *testing.T) {
	// f(t) = t^2; ∫[0,3) t^2 dt = 9 exactly (27/3), should succeed.
	p := Polynomial{Coeffs: []int{0, 0, 1}}
	if _, err := p.Integral(0, 3); err != nil {
		t.Fatalf("Integral(0,3) for t^2: %v", err)
	}
	// f(t) = t^3; ∫[0,2) t^3 dt = 16/4 = 4 exactly too, so force a
	// non-exact case: ∫[0,1) with an added t^1 term needing /2 over an
	// odd total isn't representative here — instead verify the explicit
	// non-exact guard using a coefficient/window combination that fails
	// the modulus check directly: n=1 (needs /2) over width 1.
	lin := Polynomial{Coeffs: []int{0, 1}}
	if _, err := lin.Integral(0, 1); err == nil {
		t.Fatalf("Integral(0,1) for t^1 succeeded, want rejection (1/2 not exact)")
	}
}
