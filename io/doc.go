// Package io provides the port devices reached by the 8080 IN and OUT
// instructions.
//
// A Bus maps each of the 256 ports to a Device register. Devices are a
// console Tape, a buffered Ring, and the arcade Shifter.
package io
