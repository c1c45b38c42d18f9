// Package main is the entry point for homekeep.
//
//	@title			homekeep API
//	@version		1.0
//	@description	Home tools subscription ledger with current charge and next-cycle projection.
//
//	@contact.name	homekeep maintainers
//	@contact.url	https://github.com/artpar/homekeep/issues
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@BasePath		/
package main

func main() {
	Execute()
}
