package mpesa

import (
	"log"
	"strings"

	"jamii/internal/config"
)

// NewFromEnv builds the configured Gateway variant. Anything other than
// "daraja" falls back to the simulator so a misconfigured box never
// pushes real charges.
func NewFromEnv(env config.MpesaEnv) Gateway {
	switch strings.ToLower(strings.TrimSpace(env.Driver)) {
	case "daraja":
		return NewClient(env)
	case "simulator", "":
		return NewSimulator()
	default:
		log.Printf("unknown MPESA_DRIVER %q, using simulator", env.Driver)
		return NewSimulator()
	}
}
