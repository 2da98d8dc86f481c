package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Sanctions *SanctionRepository
	Audit     *AuditRepository
	Glossary  *GlossaryRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Sanctions: NewSanctionRepository(pool),
		Audit:     NewAuditRepository(pool),
		Glossary:  NewGlossaryRepository(pool),
	}
}
