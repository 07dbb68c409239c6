package model

// Payment methods accepted at the register.
const (
	MethodCash     = "efectivo"
	MethodWallet   = "billetera"
	MethodYape     = "yape"
	MethodCard     = "tarjeta"
	MethodTransfer = "transferencia"
)

var knownMethods = map[string]bool{
	MethodCash:     true,
	MethodWallet:   true,
	MethodYape:     true,
	MethodCard:     true,
	MethodTransfer: true,
}

func KnownMethod(m string) bool { return knownMethods[m] }

// MethodRequiresAccount reports whether the method deposits into (or draws
// from) a bank account, which must then be selected explicitly.
func MethodRequiresAccount(m string) bool {
	return m != MethodCash && m != MethodWallet
}

// MethodRequiresReference reports whether the method carries an external
// operation number that must be captured for traceability.
func MethodRequiresReference(m string) bool {
	switch m {
	case MethodYape, MethodCard, MethodTransfer:
		return true
	}
	return false
}
