package alerts

import (
	"context"
	"time"

	"smartbin-backend/internal/database"
	"smartbin-backend/internal/models"
	"smartbin-backend/internal/telemetry"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Store is the repository surface the evaluator reads bins from and writes alerts to.
type Store interface {
	ListSmartBins(ctx context.Context, scope models.OwnerScope) ([]models.SmartBin, error)
	ListCompartments(ctx context.Context, scope models.OwnerScope, smartBinID string) ([]models.Compartment, error)
	ListSingleBins(ctx context.Context, scope models.OwnerScope) ([]models.SingleBin, error)
	UpdateSensorSnapshot(ctx context.Context, kind models.EntityType, id string, snap models.SensorSnapshot) error
	FindUnacknowledgedAlert(ctx context.Context, entityID, alertType string) (*models.Alert, error)
	CreateAlert(ctx context.Context, alert *models.Alert) error
	RefreshAlert(ctx context.Context, id string, severity string, value float64, message string) error
}

// SampleReader returns the latest sample of a device, nil when it never reported.
type SampleReader interface {
	LatestSample(ctx context.Context, deviceID string) (*models.SensorSample, error)
}

// Notifier is told about alerts that were just created.
type Notifier interface {
	NotifyAlerts(ctx context.Context, alerts []models.Alert)
}

// Result summarizes one evaluation pass.
type Result struct {
	Evaluated int            `json:"evaluated"`
	Created   []models.Alert `json:"created"`
	Refreshed []models.Alert `json:"refreshed"`
	Failed    int            `json:"failed"`
}

type Evaluator struct {
	store    Store
	samples  SampleReader
	notifier Notifier
	now      func() time.Time
}

// NewEvaluator builds an evaluator. samples and notifier may be nil.
func NewEvaluator(store Store, samples SampleReader, notifier Notifier) *Evaluator {
	return &Evaluator{store: store, samples: samples, notifier: notifier, now: time.Now}
}

// Run evaluates every SmartBin, Compartment and SingleBin.
func (e *Evaluator) Run(ctx context.Context) Result {
	targets, failed := e.collectTargets(ctx)
	result := e.EvaluateBins(ctx, targets)
	result.Failed += failed
	return result
}

// EvaluateBins refreshes each target's sensor snapshot, evaluates it and
// records the breaches. An entity that fails is logged and skipped.
func (e *Evaluator) EvaluateBins(ctx context.Context, targets []Target) Result {
	result := Result{Created: []models.Alert{}, Refreshed: []models.Alert{}}

	for _, target := range targets {
		if err := e.evaluateOne(ctx, target, &result); err != nil {
			result.Failed++
			log.WithError(err).
				WithField("entity_type", target.Kind).
				WithField("entity_id", target.ID).
				Warn("⚠️  Alert evaluation failed, continuing")
			continue
		}
		result.Evaluated++
	}

	if len(result.Created) > 0 {
		log.Printf("🔔 Created %d new alert(s)", len(result.Created))
		if e.notifier != nil {
			e.notifier.NotifyAlerts(ctx, result.Created)
		}
	}
	return result
}

func (e *Evaluator) evaluateOne(ctx context.Context, target Target, result *Result) error {
	if err := e.refreshSnapshot(ctx, &target); err != nil {
		return err
	}

	for _, breach := range Evaluate(target) {
		existing, err := e.store.FindUnacknowledgedAlert(ctx, target.ID, breach.AlertType)
		if err != nil {
			return err
		}

		if existing != nil {
			if err := e.store.RefreshAlert(ctx, existing.ID, breach.Severity, breach.Value, breach.Message); err != nil {
				return err
			}
			existing.Severity = breach.Severity
			existing.CurrentValue = breach.Value
			existing.Message = breach.Message
			result.Refreshed = append(result.Refreshed, *existing)
			continue
		}

		alert := newAlert(target, breach, e.now().Unix())
		err = e.store.CreateAlert(ctx, &alert)
		if errors.Is(err, database.ErrAlertExists) {
			// Another run created it between the lookup and the insert.
			continue
		}
		if err != nil {
			return err
		}
		result.Created = append(result.Created, alert)
	}
	return nil
}

// refreshSnapshot overlays the device's latest sample on the cached snapshot
// and persists it. Without a device or a sample the cached values are kept.
func (e *Evaluator) refreshSnapshot(ctx context.Context, target *Target) error {
	attrs := &target.Attributes
	if e.samples == nil || attrs.DeviceID == nil || *attrs.DeviceID == "" {
		return nil
	}

	sample, err := e.samples.LatestSample(ctx, *attrs.DeviceID)
	if err != nil {
		return errors.Wrapf(err, "reading sensor data of device %s", *attrs.DeviceID)
	}
	if sample == nil {
		return nil
	}

	snap := attrs.SensorSnapshot
	if sample.Distance != nil {
		fill := telemetry.FillFromSample(sample, attrs.BinHeight)
		snap.FillLevel = &fill
	}
	overlay(&snap.BatteryLevel, sample.Battery)
	overlay(&snap.Temperature, sample.Temperature)
	overlay(&snap.Humidity, sample.Humidity)
	overlay(&snap.AirQuality, sample.AirQuality)
	overlay(&snap.OdourLevel, sample.OdourLevel)
	ts := sample.Timestamp
	snap.LastUpdate = &ts
	attrs.SensorSnapshot = snap

	if err := e.store.UpdateSensorSnapshot(ctx, target.Kind, target.ID, snap); err != nil {
		// The fresh values are still evaluated.
		log.WithError(err).WithField("entity_id", target.ID).Warn("⚠️  Could not cache sensor snapshot")
	}
	return nil
}

func overlay(dst **float64, v *float64) {
	if v != nil {
		val := *v
		*dst = &val
	}
}

func (e *Evaluator) collectTargets(ctx context.Context) ([]Target, int) {
	var targets []Target
	failed := 0
	all := models.AllOwners()

	if bins, err := e.store.ListSmartBins(ctx, all); err != nil {
		failed++
		log.WithError(err).Error("❌ Failed to list smart bins for alert evaluation")
	} else {
		for _, b := range bins {
			targets = append(targets, SmartBinTarget(b))
		}
	}

	if compartments, err := e.store.ListCompartments(ctx, all, ""); err != nil {
		failed++
		log.WithError(err).Error("❌ Failed to list compartments for alert evaluation")
	} else {
		for _, c := range compartments {
			targets = append(targets, CompartmentTarget(c))
		}
	}

	if bins, err := e.store.ListSingleBins(ctx, all); err != nil {
		failed++
		log.WithError(err).Error("❌ Failed to list single bins for alert evaluation")
	} else {
		for _, b := range bins {
			targets = append(targets, SingleBinTarget(b))
		}
	}

	return targets, failed
}

func newAlert(target Target, breach Breach, now int64) models.Alert {
	return models.Alert{
		EntityID:      target.ID,
		EntityType:    target.Kind,
		BinID:         target.BinID,
		CompartmentID: target.CompartmentID,
		BinName:       target.Name,
		AlertType:     breach.AlertType,
		Severity:      breach.Severity,
		CurrentValue:  breach.Value,
		Threshold:     breach.Threshold,
		Unit:          breach.Unit,
		Message:       breach.Message,
		CreatedBy:     target.Attributes.CreatedBy,
		CreatedAt:     now,
	}
}
