// Greenhouse - Smart Greenhouse Management System
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/greenhouse

package database

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/greenhouse/internal/config"
	"github.com/tomtom215/greenhouse/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := Open(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          "file:" + name + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedUser(t *testing.T, db *DB, email, role string) *models.User {
	t.Helper()
	u := &models.User{Name: strings.Split(email, "@")[0], Email: email, Password: "hash", Role: role}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s) error = %v", email, err)
	}
	return u
}

func seedGreenhouse(t *testing.T, db *DB, owner *models.User, name string) *models.Greenhouse {
	t.Helper()
	g := &models.Greenhouse{Name: name, Location: "Plot 1", Status: models.GreenhouseActive, UserID: owner.ID}
	if err := db.CreateGreenhouse(context.Background(), g); err != nil {
		t.Fatalf("CreateGreenhouse(%s) error = %v", name, err)
	}
	return g
}

func TestMigrate_RecordsVersions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if got, want := db.SchemaVersion(ctx), Migrations[len(Migrations)-1].Version; got != want {
		t.Fatalf("SchemaVersion() = %d, want %d", got, want)
	}

	// A second run is a no-op.
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() second run error = %v", err)
	}
	applied, err := db.AppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("AppliedMigrations() error = %v", err)
	}
	if len(applied) != len(Migrations) {
		t.Errorf("applied %d migrations, want %d", len(applied), len(Migrations))
	}
	if err := db.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestSQLiteDSN(t *testing.T) {
	t.Parallel()

	if got := sqliteDSN("data/gh.db"); got != "data/gh.db?_foreign_keys=1&_busy_timeout=5000" {
		t.Errorf("sqliteDSN(path) = %q", got)
	}
	if got := sqliteDSN("file:x?mode=memory"); !strings.HasPrefix(got, "file:x?mode=memory&_foreign_keys=1") {
		t.Errorf("sqliteDSN(uri) = %q", got)
	}
}

func TestUsers_CRUD(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	u := seedUser(t, db, "ana@example.org", models.RoleFarmer)
	if !u.IsActive {
		t.Error("new users should default to active")
	}

	dup := &models.User{Name: "Other", Email: "ana@example.org", Password: "hash", Role: models.RoleFarmer}
	if err := db.CreateUser(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate email error = %v, want ErrDuplicate", err)
	}

	exists, err := db.EmailExists(ctx, "ana@example.org", 0)
	if err != nil || !exists {
		t.Fatalf("EmailExists() = %v, %v", exists, err)
	}
	exists, _ = db.EmailExists(ctx, "ana@example.org", u.ID)
	if exists {
		t.Error("EmailExists() should ignore the excluded user")
	}

	got, err := db.UserByEmail(ctx, "ana@example.org")
	if err != nil || got.ID != u.ID {
		t.Fatalf("UserByEmail() = %+v, %v", got, err)
	}

	got.Name = "Ana Maria"
	got.IsActive = false
	if err := db.UpdateUser(ctx, got); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	reloaded, _ := db.UserByID(ctx, u.ID)
	if reloaded.Name != "Ana Maria" || reloaded.IsActive {
		t.Errorf("UpdateUser() did not persist zero values: %+v", reloaded)
	}

	now := time.Now().UTC()
	if err := db.MarkEmailVerified(ctx, u.ID, now); err != nil {
		t.Fatalf("MarkEmailVerified() error = %v", err)
	}
	if err := db.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
		t.Fatalf("SetRole() error = %v", err)
	}
	reloaded, _ = db.UserByID(ctx, u.ID)
	if !reloaded.IsVerified() || !reloaded.IsAdmin() {
		t.Errorf("user = %+v, want verified admin", reloaded)
	}

	if err := db.SetLoggedIn(ctx, 9999, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetLoggedIn(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := db.UserByID(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("UserByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUsers_EmailLookupIgnoresCase(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// Rows written before emails were normalized may carry mixed case.
	u := seedUser(t, db, "Ana.Legacy@Example.org", models.RoleFarmer)

	for _, email := range []string{"ana.legacy@example.org", "ANA.LEGACY@EXAMPLE.ORG", " Ana.Legacy@example.org "} {
		exists, err := db.EmailExists(ctx, email, 0)
		if err != nil || !exists {
			t.Errorf("EmailExists(%q) = %v, %v; want true", email, exists, err)
		}
		got, err := db.UserByEmail(ctx, email)
		if err != nil || got.ID != u.ID {
			t.Errorf("UserByEmail(%q) = %+v, %v", email, got, err)
		}
	}
	if exists, _ := db.EmailExists(ctx, "ANA.LEGACY@example.org", u.ID); exists {
		t.Error("EmailExists() should ignore the excluded user")
	}
}

func TestGreenhouses_Scope(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.org", models.RoleFarmer)
	bob := seedUser(t, db, "bob@example.org", models.RoleFarmer)
	admin := seedUser(t, db, "root@example.org", models.RoleAdmin)

	ga := seedGreenhouse(t, db, alice, "Alice North")
	seedGreenhouse(t, db, bob, "Bob South")

	list, err := db.ListGreenhouses(ctx, ScopeFor(alice))
	if err != nil {
		t.Fatalf("ListGreenhouses() error = %v", err)
	}
	if len(list) != 1 || list[0].ID != ga.ID {
		t.Errorf("alice sees %+v, want only her greenhouse", list)
	}

	all, _ := db.ListGreenhouses(ctx, ScopeFor(admin))
	if len(all) != 2 {
		t.Errorf("admin sees %d greenhouses, want 2", len(all))
	}

	if _, err := db.GreenhouseByID(ctx, ga.ID, ScopeFor(bob)); !errors.Is(err, ErrNotFound) {
		t.Errorf("bob reading alice's greenhouse: error = %v, want ErrNotFound", err)
	}
}

func TestDeleteGreenhouse_Cascades(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "grower@example.org", models.RoleFarmer)
	g := seedGreenhouse(t, db, owner, "East")

	planted, _ := models.ParseDate("2024-03-01")
	plant := &models.Plant{Name: "Tomato", Species: "Solanum lycopersicum", PlantingDate: planted, Status: models.PlantGrowing, GreenhouseID: g.ID}
	if err := db.CreatePlant(ctx, plant); err != nil {
		t.Fatalf("CreatePlant() error = %v", err)
	}
	sensor := &models.Sensor{Name: "T1", Type: models.SensorTemperature, Status: "active", GreenhouseID: g.ID}
	if err := db.CreateSensor(ctx, sensor); err != nil {
		t.Fatalf("CreateSensor() error = %v", err)
	}
	if _, err := db.UpsertControlState(ctx, g.ID, "heating", models.ControlOn, nil); err != nil {
		t.Fatalf("UpsertControlState() error = %v", err)
	}

	if err := db.DeleteGreenhouse(ctx, g.ID); err != nil {
		t.Fatalf("DeleteGreenhouse() error = %v", err)
	}

	all := Scope{All: true}
	if _, err := db.PlantByID(ctx, plant.ID, all); !errors.Is(err, ErrNotFound) {
		t.Errorf("plant survived greenhouse delete: %v", err)
	}
	if _, err := db.SensorByID(ctx, sensor.ID, all); !errors.Is(err, ErrNotFound) {
		t.Errorf("sensor survived greenhouse delete: %v", err)
	}
	states, _ := db.ControlStates(ctx, g.ID)
	if len(states) != 0 {
		t.Errorf("control states survived greenhouse delete: %+v", states)
	}
}

func TestDeleteUser_Cascades(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "leaving@example.org", models.RoleFarmer)
	g := seedGreenhouse(t, db, owner, "West")
	tok := &models.AccessToken{ID: "0d4a7c6e-1111-4e8b-9a0e-3c2b6b9f0a01", UserID: owner.ID, Name: "auth_token", ExpiresAt: time.Now().Add(time.Hour).UTC()}
	if err := db.CreateToken(ctx, tok); err != nil {
		t.Fatalf("CreateToken() error = %v", err)
	}

	if err := db.DeleteUser(ctx, owner.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if _, err := db.GreenhouseByID(ctx, g.ID, Scope{All: true}); !errors.Is(err, ErrNotFound) {
		t.Errorf("greenhouse survived user delete: %v", err)
	}
	if _, err := db.TokenByID(ctx, tok.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("token survived user delete: %v", err)
	}
	if err := db.DeleteUser(ctx, owner.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteUser() error = %v, want ErrNotFound", err)
	}
}

func TestPlants_ScopeAndPreload(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.org", models.RoleFarmer)
	bob := seedUser(t, db, "bob@example.org", models.RoleFarmer)
	ga := seedGreenhouse(t, db, alice, "A")
	gb := seedGreenhouse(t, db, bob, "B")

	planted, _ := models.ParseDate("2024-04-01")
	for _, gid := range []uint{ga.ID, gb.ID} {
		p := &models.Plant{Name: "Basil", Species: "Ocimum", PlantingDate: planted, Status: models.PlantGrowing, GreenhouseID: gid}
		if err := db.CreatePlant(ctx, p); err != nil {
			t.Fatalf("CreatePlant() error = %v", err)
		}
	}

	plants, err := db.ListPlants(ctx, ScopeFor(alice))
	if err != nil {
		t.Fatalf("ListPlants() error = %v", err)
	}
	if len(plants) != 1 || plants[0].GreenhouseID != ga.ID {
		t.Fatalf("alice sees %+v, want one plant in her greenhouse", plants)
	}
	if plants[0].Greenhouse == nil || plants[0].Greenhouse.Name != "A" {
		t.Errorf("greenhouse not preloaded: %+v", plants[0].Greenhouse)
	}
	if plants[0].PlantingDate.String() != "2024-04-01" {
		t.Errorf("PlantingDate = %s, want 2024-04-01", plants[0].PlantingDate)
	}

	p := plants[0]
	harvest, _ := models.ParseDate("2024-06-15")
	p.HarvestDate = &harvest
	p.Status = models.PlantHarvested
	if err := db.UpdatePlant(ctx, &p); err != nil {
		t.Fatalf("UpdatePlant() error = %v", err)
	}
	got, _ := db.PlantByID(ctx, p.ID, ScopeFor(alice))
	if got.HarvestDate == nil || got.HarvestDate.String() != "2024-06-15" || got.Status != models.PlantHarvested {
		t.Errorf("UpdatePlant() = %+v", got)
	}

	bad := &models.Plant{Name: "Ghost", Species: "x", PlantingDate: planted, Status: models.PlantGrowing, GreenhouseID: 4242}
	if err := db.CreatePlant(ctx, bad); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("CreatePlant(missing greenhouse) error = %v, want ErrInvalidReference", err)
	}
}

func TestRecordReading_UpdatesGreenhouseMetric(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "probe@example.org", models.RoleFarmer)
	g := seedGreenhouse(t, db, owner, "Lab")
	s := &models.Sensor{Name: "H1", Type: models.SensorHumidity, Status: "active", GreenhouseID: g.ID}
	if err := db.CreateSensor(ctx, s); err != nil {
		t.Fatalf("CreateSensor() error = %v", err)
	}

	at := time.Now().UTC().Truncate(time.Second)
	if err := db.RecordReading(ctx, s, 48.5, at); err != nil {
		t.Fatalf("RecordReading() error = %v", err)
	}
	if s.LastReading == nil || *s.LastReading != 48.5 {
		t.Errorf("sensor not updated in place: %+v", s)
	}

	got, _ := db.GreenhouseByID(ctx, g.ID, ScopeFor(owner))
	if got.Humidity == nil || *got.Humidity != 48.5 {
		t.Errorf("Humidity = %v, want 48.5", got.Humidity)
	}
	if got.Metrics().Temperature != models.DefaultTemperature {
		t.Errorf("Temperature should still use the default")
	}
}

func TestUpsertControlState(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "ctl@example.org", models.RoleFarmer)
	g := seedGreenhouse(t, db, owner, "Ctl")

	first, err := db.UpsertControlState(ctx, g.ID, "ventilation", models.ControlOn, nil)
	if err != nil {
		t.Fatalf("UpsertControlState() error = %v", err)
	}
	level := 40.0
	second, err := db.UpsertControlState(ctx, g.ID, "ventilation", models.ControlAuto, &level)
	if err != nil {
		t.Fatalf("UpsertControlState() second error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("upsert created a new row: %d vs %d", first.ID, second.ID)
	}

	states, _ := db.ControlStates(ctx, g.ID)
	if len(states) != 1 || states[0].Mode != models.ControlAuto || states[0].Value == nil || *states[0].Value != 40 {
		t.Errorf("ControlStates() = %+v", states)
	}
}

func TestOTPs_Lifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	u := seedUser(t, db, "otp@example.org", models.RoleFarmer)

	first := &models.OTP{UserID: u.ID, Code: "111111", ExpiresAt: now.Add(10 * time.Minute)}
	if err := db.ReplaceOTP(ctx, first); err != nil {
		t.Fatalf("ReplaceOTP() error = %v", err)
	}
	second := &models.OTP{UserID: u.ID, Code: "222222", ExpiresAt: now.Add(10 * time.Minute)}
	if err := db.ReplaceOTP(ctx, second); err != nil {
		t.Fatalf("ReplaceOTP() second error = %v", err)
	}

	latest, err := db.LatestValidOTP(ctx, u.ID, now)
	if err != nil {
		t.Fatalf("LatestValidOTP() error = %v", err)
	}
	if latest.Code != "222222" {
		t.Errorf("latest code = %s, want 222222 (old code replaced)", latest.Code)
	}

	if err := db.MarkOTPUsed(ctx, latest.ID); err != nil {
		t.Fatalf("MarkOTPUsed() error = %v", err)
	}
	if err := db.MarkOTPUsed(ctx, latest.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkOTPUsed() twice error = %v, want ErrNotFound", err)
	}
	if _, err := db.LatestValidOTP(ctx, u.ID, now); !errors.Is(err, ErrNotFound) {
		t.Errorf("used code still valid: %v", err)
	}

	expired := &models.OTP{UserID: u.ID, Code: "333333", ExpiresAt: now.Add(-time.Minute)}
	if err := db.ReplaceOTP(ctx, expired); err != nil {
		t.Fatalf("ReplaceOTP(expired) error = %v", err)
	}
	if _, err := db.LatestValidOTP(ctx, u.ID, now); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired code still valid: %v", err)
	}

	n, err := db.DeleteExpiredOTPs(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpiredOTPs() error = %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteExpiredOTPs() = %d, want 2 (one used, one expired)", n)
	}
}

func TestTokens_Lifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	u := seedUser(t, db, "tok@example.org", models.RoleFarmer)
	live := &models.AccessToken{ID: "a1", UserID: u.ID, Name: "auth_token", ExpiresAt: now.Add(time.Hour)}
	old := &models.AccessToken{ID: "a2", UserID: u.ID, Name: "auth_token", ExpiresAt: now.Add(-time.Hour)}
	for _, tok := range []*models.AccessToken{live, old} {
		if err := db.CreateToken(ctx, tok); err != nil {
			t.Fatalf("CreateToken(%s) error = %v", tok.ID, err)
		}
	}

	if err := db.TouchToken(ctx, "a1", now); err != nil {
		t.Fatalf("TouchToken() error = %v", err)
	}
	got, err := db.TokenByID(ctx, "a1")
	if err != nil || got.LastUsedAt == nil {
		t.Fatalf("TokenByID() = %+v, %v", got, err)
	}

	n, err := db.DeleteExpiredTokens(ctx, now)
	if err != nil || n != 1 {
		t.Fatalf("DeleteExpiredTokens() = %d, %v; want 1", n, err)
	}
	n, err = db.DeleteUserTokens(ctx, u.ID)
	if err != nil || n != 1 {
		t.Fatalf("DeleteUserTokens() = %d, %v; want 1", n, err)
	}
}
