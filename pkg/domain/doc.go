// Package domain contains the subscription records shared by the storage,
// notification and service layers. The types carry no infrastructure
// concerns; their JSON form lives in pkg/storage.
package domain
