// Package main seeds the directory with demo buildings, a three-level
// activity forest and tagged organizations. It goes through the same
// service layer the server uses, so all invariants apply.
package main

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/orgcatalog/backend/config"
	"github.com/orgcatalog/backend/internal/activities"
	"github.com/orgcatalog/backend/internal/buildings"
	"github.com/orgcatalog/backend/internal/models"
	"github.com/orgcatalog/backend/internal/organizations"
	"github.com/orgcatalog/backend/pkg/database"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	activitySvc := activities.NewService(activities.NewRepository(pool), cfg.Catalog.MaxActivityDepth, cfg.Catalog.UnknownParentPolicy, logger)
	buildingSvc := buildings.NewService(buildings.NewRepository(pool), cfg.Search.MaxRadiusMeters, cfg.Search.NearbyLimit, logger)
	orgSvc := organizations.NewService(organizations.NewRepository(pool), activitySvc, buildingSvc, logger)

	bldgs := seedBuildings(ctx, logger, buildingSvc)
	acts := seedActivities(ctx, logger, activitySvc)
	seedOrganizations(ctx, logger, orgSvc, bldgs, acts)

	logger.Info("database seeded")
}

func seedBuildings(ctx context.Context, logger *zap.Logger, svc *buildings.Service) []*models.Building {
	data := []struct {
		address  string
		lat, lon float64
	}{
		{"Moscow, Lenina st. 1", 55.7558, 37.6176},
		{"Moscow, Tverskaya st. 15", 55.7658, 37.6076},
		{"Moscow, Mira ave. 10", 55.7858, 37.6376},
		{"Moscow, Arbat st. 30", 55.7458, 37.5976},
	}
	out := make([]*models.Building, 0, len(data))
	for _, d := range data {
		b, err := svc.Create(ctx, d.address, d.lat, d.lon)
		if err != nil {
			logger.Fatal("seed building", zap.String("address", d.address), zap.Error(err))
		}
		logger.Info("created building", zap.Int64("id", b.ID), zap.String("address", b.Address))
		out = append(out, b)
	}
	return out
}

// seeded activity ids, keyed by name.
type activitySet map[string]int64

func seedActivities(ctx context.Context, logger *zap.Logger, svc *activities.Service) activitySet {
	set := activitySet{}
	add := func(name string, parent string) {
		var parentID *int64
		if parent != "" {
			id := set[parent]
			parentID = &id
		}
		a, err := svc.Create(ctx, name, parentID)
		if err != nil {
			logger.Fatal("seed activity", zap.String("name", name), zap.Error(err))
		}
		logger.Info("created activity", zap.Int64("id", a.ID), zap.String("name", a.Name), zap.Int("level", a.Level))
		set[name] = a.ID
	}

	add("Food", "")
	add("Cars", "")
	add("Meat products", "Food")
	add("Dairy products", "Food")
	add("Trucks", "Cars")
	add("Passenger cars", "Cars")
	add("Spare parts", "Passenger cars")
	add("Accessories", "Passenger cars")
	return set
}

func seedOrganizations(ctx context.Context, logger *zap.Logger, svc *organizations.Service, bldgs []*models.Building, acts activitySet) {
	data := []struct {
		name       string
		building   int
		phones     []string
		activities []string
	}{
		{"Horns and Hooves LLC", 0, []string{"2-222-222", "3-333-333"}, []string{"Meat products", "Dairy products"}},
		{"Dairy Paradise", 1, []string{"8-923-666-13-13"}, []string{"Dairy products"}},
		{"AutoWorld LLC", 2, []string{"8-800-555-35-35", "8-812-123-45-67"}, []string{"Passenger cars", "Spare parts", "Accessories"}},
		{"Truckers Inc", 3, []string{"8-383-222-33-44"}, []string{"Trucks", "Spare parts"}},
		{"Meat Plant No. 1", 0, []string{"8-495-111-22-33"}, []string{"Meat products"}},
		{"AutoParts Plus", 1, []string{"8-495-777-88-99"}, []string{"Spare parts"}},
	}
	for _, d := range data {
		ids := make([]int64, 0, len(d.activities))
		for _, name := range d.activities {
			ids = append(ids, acts[name])
		}
		res, err := svc.Create(ctx, organizations.CreateInput{
			Name:         d.name,
			BuildingID:   bldgs[d.building].ID,
			PhoneNumbers: d.phones,
			ActivityIDs:  ids,
		})
		if err != nil {
			logger.Fatal("seed organization", zap.String("name", d.name), zap.Error(err))
		}
		logger.Info("created organization", zap.Int64("id", res.Organization.ID), zap.String("name", d.name))
	}
}

func newLogger() *zap.Logger {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
