// Package entities provides core domain entities for the binding.
// These are general-purpose types shared by the host registrar, the wazero
// adapter and the guest SDK.
package entities
