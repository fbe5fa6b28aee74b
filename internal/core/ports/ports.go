// Package ports declares the contracts between the use cases and the adapters around them.
// Inbound interfaces are implemented by use cases, outbound ones by infrastructure.
package ports
