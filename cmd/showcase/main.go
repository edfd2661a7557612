package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/trip-ledger/internal/auth"
	"github.com/ukydev/trip-ledger/internal/config"
	"github.com/ukydev/trip-ledger/internal/db"
	"github.com/ukydev/trip-ledger/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// route is a regular business drive of the demo vehicle.
type route struct {
	From    string
	To      string
	Km      float64
	Purpose string
}

var routes = []route{
	{"Bratislava", "Trnava", 52, "Client meeting"},
	{"Bratislava", "Nitra", 92, "Site inspection"},
	{"Bratislava", "Senec", 26, "Supplier visit"},
	{"Bratislava", "Pezinok", 21, "Delivery"},
	{"Bratislava", "Malacky", 38, "Client meeting"},
	{"Bratislava", "Piešťany", 87, "Trade fair"},
	{"Bratislava", "Bratislava", 18, "City errands"},
}

var stations = []string{"Slovnaft", "OMV", "Shell", "MOL"}

// demoVehicle is the ICE car the showcase ledger is built for.
func demoVehicle() models.Vehicle {
	return models.Vehicle{
		ID:                 uuid.NewString(),
		Name:               "Škoda Octavia Combi",
		LicensePlate:       "BL-123AB",
		Type:               models.VehicleICE,
		TankSizeLiters:     models.Float(50),
		TPConsumption:      models.Float(5.1),
		InitialFuelPercent: models.Float(100),
		InitialOdometer:    45000,
		IsActive:           true,
	}
}

// generateYear drives the vehicle through year. Every fill-up gets a
// receipt; every tenth one is misread so the verification has work to do.
func generateYear(rng *rand.Rand, v models.Vehicle, year int) ([]models.Trip, []models.Receipt) {
	tank := *v.TankSizeLiters
	level := tank * *v.InitialFuelPercent / 100
	odometer := v.InitialOdometer

	var trips []models.Trip
	var receipts []models.Receipt
	fillups := 0

	for day := time.Date(year, time.January, 2, 0, 0, 0, 0, time.UTC); day.Year() == year; day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday || rng.Float64() < 0.3 {
			continue
		}
		r := routes[rng.Intn(len(routes))]
		km := math.Round(r.Km*2*(0.95+rng.Float64()*0.1)*10) / 10
		start := day.Add(time.Duration(7+rng.Intn(3)) * time.Hour)
		end := start.Add(time.Duration(km/60*float64(time.Hour)) + 30*time.Minute)
		odometer += km

		// Real consumption stays below 1.15x the type-approval figure.
		level -= km * *v.TPConsumption * (1 + rng.Float64()*0.15) / 100

		t := models.Trip{
			ID:          uuid.NewString(),
			VehicleID:   v.ID,
			StartTime:   start,
			EndTime:     &end,
			Origin:      r.From,
			Destination: r.To,
			Purpose:     r.Purpose,
			DistanceKm:  km,
			Odometer:    math.Round(odometer),
		}

		if level < tank*0.25 {
			liters := math.Round((tank-level)*100) / 100
			price := 1.55 + rng.Float64()*0.2
			cost := math.Round(liters*price*100) / 100
			t.FuelLiters = models.Float(liters)
			t.FuelCostEUR = models.Float(cost)
			t.FullTank = true
			level = tank

			fillups++
			receiptCost := cost
			if fillups%10 == 0 {
				receiptCost += 0.5
			}
			date := end
			receipts = append(receipts, models.Receipt{
				ID:               uuid.NewString(),
				VehicleID:        v.ID,
				FileName:         fmt.Sprintf("receipt-%s-%03d.jpg", day.Format("20060102"), fillups),
				OriginalAmount:   models.Float(receiptCost),
				OriginalCurrency: "EUR",
				AmountEUR:        models.Float(receiptCost),
				ReceiptDate:      &date,
				Liters:           models.Float(liters),
				Kind:             models.ReceiptFuel,
				StationName:      stations[rng.Intn(len(stations))],
				Status:           models.ReceiptParsed,
			})
		}

		if r.To == "Bratislava" && rng.Float64() < 0.3 {
			parking := float64(2 + rng.Intn(6))
			date := start
			receipts = append(receipts, models.Receipt{
				ID:              uuid.NewString(),
				VehicleID:       v.ID,
				FileName:        fmt.Sprintf("parking-%s.jpg", day.Format("20060102")),
				AmountEUR:       models.Float(parking),
				ReceiptDate:     &date,
				Kind:            models.ReceiptOther,
				VendorName:      "City Parking",
				CostDescription: "Parking",
				Status:          models.ReceiptParsed,
			})
		}

		t.SortIndex = len(trips)
		trips = append(trips, t)
	}
	return trips, receipts
}

// stores groups the collections the showcase writes to.
type stores struct {
	vehicles  db.VehicleCollection
	trips     db.TripCollection
	receipts  db.ReceiptCollection
	operators db.OperatorCollection
}

func seed(ctx context.Context, s stores, authService *auth.Service, rng *rand.Rand, year int, password string) error {
	v := demoVehicle()
	if err := v.Validate(); err != nil {
		return err
	}
	if err := s.vehicles.InsertVehicle(ctx, v); err != nil {
		return fmt.Errorf("insert vehicle: %w", err)
	}

	trips, receipts := generateYear(rng, v, year)
	for _, t := range trips {
		if err := s.trips.InsertTrip(ctx, t); err != nil {
			return fmt.Errorf("insert trip %s: %w", t.ID, err)
		}
	}
	for _, r := range receipts {
		if err := s.receipts.InsertReceipt(ctx, r); err != nil {
			return fmt.Errorf("insert receipt %s: %w", r.ID, err)
		}
	}

	if err := authService.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := authService.HashPassword(password)
	if err != nil {
		return err
	}
	owner := models.Operator{
		ID:           primitive.NewObjectID(),
		Username:     "owner",
		Email:        "owner@example.com",
		PasswordHash: hash,
		Role:         models.RoleOwner,
		DisplayName:  "Fleet Owner",
	}
	if _, err := s.operators.FindOperatorByUsername(ctx, owner.Username); err == nil {
		log.WithField("username", owner.Username).Info("Operator already exists, skipping")
	} else if err := s.operators.InsertOperator(ctx, owner); err != nil {
		return fmt.Errorf("insert operator: %w", err)
	}

	log.WithFields(log.Fields{
		"vehicle_id": v.ID,
		"vehicle":    v.Name,
		"year":       year,
		"trips":      len(trips),
		"receipts":   len(receipts),
	}).Info("Seeded showcase ledger")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	year := time.Now().Year()
	if v := os.Getenv("SHOWCASE_YEAR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			year = n
		}
	}
	seedValue := time.Now().UnixNano()
	if v := os.Getenv("SHOWCASE_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			seedValue = n
		}
	}
	password := os.Getenv("SHOWCASE_OWNER_PASSWORD")
	if password == "" {
		password = "showcase-owner"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())
	database := client.Database(cfg.MongoDB)

	authService, err := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		log.WithError(err).Fatal("Failed to create auth service")
	}

	s := stores{
		vehicles:  &db.MongoCollection{Collection: database.Collection(db.VehiclesCollection)},
		trips:     &db.MongoCollection{Collection: database.Collection(db.TripsCollection)},
		receipts:  &db.MongoCollection{Collection: database.Collection(db.ReceiptsCollection)},
		operators: &db.MongoOperatorCollection{Collection: database.Collection(db.OperatorsCollection)},
	}

	log.WithFields(log.Fields{"year": year, "seed": seedValue}).Info("Starting showcase seeding")
	if err := seed(ctx, s, authService, rand.New(rand.NewSource(seedValue)), year, password); err != nil {
		log.WithError(err).Fatal("Showcase seeding failed")
	}
}
