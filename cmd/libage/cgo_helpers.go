package main

// Test files cannot import "C"; tests call the exports through these.

import "C"

func callCalcularEdad(in [6]int) int {
	return int(calcular_edad(C.int(in[0]), C.int(in[1]), C.int(in[2]), C.int(in[3]), C.int(in[4]), C.int(in[5])))
}

func callCalcularEdadCpp(in [6]int) int {
	return int(calcular_edad_cpp(C.int(in[0]), C.int(in[1]), C.int(in[2]), C.int(in[3]), C.int(in[4]), C.int(in[5])))
}

func callComputeAge(in [6]int) int {
	return int(compute_age(C.int(in[0]), C.int(in[1]), C.int(in[2]), C.int(in[3]), C.int(in[4]), C.int(in[5])))
}
