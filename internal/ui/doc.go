// Package ui is the presentation core of the payroll calculator.
//
// It owns the interaction state of one page: which calculation mode is
// active, the lifecycle of the single in-flight submission, the projection of
// a result onto named display slots, and the one chart drawn from it. The page
// itself (terminal, test fake, anything else) is reached only through the
// small interfaces in view.go, and the calculation service only through
// Calculator.
package ui
