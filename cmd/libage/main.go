// Command libage builds the age rule as a C shared library:
//
//	go build -buildmode=c-shared -o libage.so ./cmd/libage
//
// The exported symbols take birth day, month, year followed by reference
// day, month, year and return the age in whole years.
package main

import "C"

import "github.com/jsamuelsen/age-service/internal/domain"

//export calcular_edad
func calcular_edad(birthDay, birthMonth, birthYear, refDay, refMonth, refYear C.int) C.int { //nolint:revive // exported C symbol
	return computeAge(birthDay, birthMonth, birthYear, refDay, refMonth, refYear)
}

//export calcular_edad_cpp
func calcular_edad_cpp(birthDay, birthMonth, birthYear, refDay, refMonth, refYear C.int) C.int { //nolint:revive // exported C symbol
	return computeAge(birthDay, birthMonth, birthYear, refDay, refMonth, refYear)
}

//export compute_age
func compute_age(birthDay, birthMonth, birthYear, refDay, refMonth, refYear C.int) C.int { //nolint:revive // exported C symbol
	return computeAge(birthDay, birthMonth, birthYear, refDay, refMonth, refYear)
}

// computeAge narrows back to C.int, wrapping on overflow like the native rule.
func computeAge(birthDay, birthMonth, birthYear, refDay, refMonth, refYear C.int) C.int {
	return C.int(domain.ComputeAge(
		int(birthDay), int(birthMonth), int(birthYear),
		int(refDay), int(refMonth), int(refYear),
	))
}

func main() {}
