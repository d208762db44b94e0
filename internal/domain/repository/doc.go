// Package repository define los tipos de dominio (Account, RefreshToken)
// y las interfaces de persistencia que los stores concretos implementan.
// Los services dependen solo de estas interfaces.
package repository
