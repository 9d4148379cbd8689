package ui

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/mapview/internal/ui"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
