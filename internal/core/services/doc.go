// Package services implements the driving ports: application logic
// between callers and the persistence layer.
package services
