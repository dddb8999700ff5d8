package entity

import "time"

// Tenant empresa cliente con base de datos propia.
type Tenant struct {
	ID        string
	Domain    string
	DBURL     string
	IsActive  bool
	CreatedAt time.Time
}
