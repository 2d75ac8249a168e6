package telemetry

import (
	"github.com/erp/orderdesk/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// RegisterDBTracing adds a span for every GORM statement. Query variables are
// left out unless cfg.DBStatements is set.
func RegisterDBTracing(db *gorm.DB, cfg config.TracingConfig, dbName string, provider trace.TracerProvider) error {
	if !cfg.Enabled {
		return nil
	}
	opts := []otelgorm.Option{otelgorm.WithDBName(dbName)}
	if !cfg.DBStatements {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if provider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(provider))
	}
	return db.Use(otelgorm.NewPlugin(opts...))
}
