// Package domain contains the core entities stored by the Lorevault
// engine: conversations, messages, personas, grimoire entries, projects,
// and provider configurations. It also defines the error taxonomy shared
// by the storage adapters and services.
//
// The domain layer has no dependencies on storage or presentation code.
package domain
