package postgres

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
)

// Migrate applies all pending up migrations from migrationsPath against the
// database at url.  A database already at the latest version is not an error.
func Migrate(url, migrationsPath string, log logging.Logger) error {
	if url == "" || migrationsPath == "" {
		return nil
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	m, err := migrate.New("file://"+migrationsPath, url)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to init migrator")
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "migration failed")
	}

	version, dirty, _ := m.Version()
	log.Named("postgres").Info("migrations applied",
		logging.Int("version", int(version)),
		logging.Bool("dirty", dirty))
	return nil
}
