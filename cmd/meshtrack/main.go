package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dn9apw/meshtrack/internal/beacon"
	"github.com/dn9apw/meshtrack/internal/codec"
	"github.com/dn9apw/meshtrack/internal/config"
	"github.com/dn9apw/meshtrack/internal/database"
	"github.com/dn9apw/meshtrack/internal/packetlog"
	"github.com/dn9apw/meshtrack/internal/protocol/meshcom"
	"github.com/dn9apw/meshtrack/internal/radio"
)

const (
	VERSION        = "1.0.0-go"
	STATS_INTERVAL = 60 * time.Second
)

// Tracker represents the MeshCom tracker node
type Tracker struct {
	config   *config.Config
	radio    *radio.Radio
	encoder  *meshcom.PositionEncoder
	beacon   *beacon.Beacon
	recorder packetlog.Recorder

	// Database components (when database mode is enabled)
	db     *database.DB
	pruner *packetlog.Pruner
}

// NewTracker creates a new tracker from a configuration file
func NewTracker(configFile string) (*Tracker, error) {
	cfg := config.NewConfig(configFile)
	if err := cfg.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config: %v", err)
	}

	// A node ID that parses to zero still runs, but every frame it
	// sends carries message ID bits without a gateway identity.
	if codec.ParseNodeID(cfg.GetNodeID()) == 0 {
		log.Printf("Warning: NodeID %q parses to 0, transmitted message IDs carry no node identity", cfg.GetNodeID())
	}

	// Initialize radio. The loopback driver stands in until a hardware
	// driver is attached; frames still flow through the full pipeline.
	driver := radio.NewLoopback(0)
	r := radio.NewRadio(driver, log.New(os.Stdout, "[RADIO] ", log.LstdFlags))

	if freq := cfg.GetRadioFrequency(); freq != 0 {
		profile, err := radio.ProfileByName(cfg.GetRadioProfile())
		if err != nil {
			return nil, fmt.Errorf("failed to configure radio: %v", err)
		}
		profile.FrequencyHz = freq
		profile.TxPowerDbm = cfg.GetRadioPower()
		if err := r.Apply(profile); err != nil {
			return nil, fmt.Errorf("failed to configure radio: %v", err)
		}
	} else {
		if err := r.SetProfile(cfg.GetRadioProfile(), cfg.GetRadioPower()); err != nil {
			return nil, fmt.Errorf("failed to configure radio: %v", err)
		}
	}

	// Initialize position encoder with the node's frame identity
	encoder := meshcom.NewPositionEncoder(cfg.GetNodeID(), cfg.GetCallsign())
	encoder.Symbol = cfg.GetSymbol()
	encoder.MaxHop = cfg.GetBeaconMaxHop()
	encoder.HardwareID = cfg.GetHardwareID()
	encoder.ModulationID = cfg.GetModulationID()
	encoder.FirmwareVersion = cfg.GetFirmwareVersion()
	encoder.FirmwareSubversion = cfg.GetFirmwareSubversion()

	// Initialize packet log (database-backed or in-memory)
	recorder, db, pruner := initializeRecorder(cfg)

	// Fixed installations beacon the configured coordinates
	var fixes beacon.FixSource
	if cfg.HasPosition() {
		var altitude *float64
		if height := cfg.GetHeight(); height != 0 {
			meters := float64(height)
			altitude = &meters
		}
		fixes = beacon.NewStaticSource(cfg.GetLatitude(), cfg.GetLongitude(), altitude)
	}

	beaconConfig := beacon.Config{
		Rate:            time.Duration(cfg.GetBeaconRate()) * time.Second,
		Keepalive:       time.Duration(cfg.GetBeaconKeepalive()) * time.Second,
		MinDistance:     float64(cfg.GetBeaconMinDistance()),
		TextMessage:     cfg.GetTextMessage(),
		TextDestination: cfg.GetTextDestination(),
		TextInterval:    time.Duration(cfg.GetTextInterval()) * time.Second,
		TextMaxHop:      meshcom.DefaultMaxHopText,
		HardwareID:      cfg.GetHardwareID(),
		ModulationID:    cfg.GetModulationID(),
	}
	b := beacon.New(beaconConfig, r, encoder, fixes, recorder,
		log.New(os.Stdout, "[BEACON] ", log.LstdFlags))

	return &Tracker{
		config:   cfg,
		radio:    r,
		encoder:  encoder,
		beacon:   b,
		recorder: recorder,
		db:       db,
		pruner:   pruner,
	}, nil
}

// initializeRecorder creates either a database-backed or in-memory packet log
// Returns the recorder, database instance (if database mode), and pruner (if database mode)
func initializeRecorder(cfg *config.Config) (packetlog.Recorder, *database.DB, *packetlog.Pruner) {
	if cfg.GetDatabaseEnabled() {
		log.Printf("Initializing database-backed packet log...")

		dbConfig := database.Config{
			Path: cfg.GetDatabasePath(),
		}

		db, err := database.NewDB(dbConfig, log.New(os.Stdout, "[DB] ", log.LstdFlags))
		if err != nil {
			log.Printf("Failed to initialize database: %v", err)
			log.Printf("Falling back to in-memory packet log...")
			return packetlog.NewMemoryRecorder(0), nil, nil
		}

		repo := database.NewPacketRepository(db.GetDB())

		recorder := packetlog.NewDatabaseRecorder(repo)
		recorder.SetDebug(cfg.GetDatabaseDebug())

		retentionDays := cfg.GetDatabaseRetentionDays()
		if retentionDays == 0 {
			retentionDays = 7 // Default
		}

		prunerConfig := packetlog.PrunerConfig{
			Retention: time.Duration(retentionDays) * 24 * time.Hour,
		}
		pruner := packetlog.NewPrunerWithConfig(repo, log.New(os.Stdout, "[PRUNE] ", log.LstdFlags), prunerConfig)

		count, err := repo.Count()
		if err == nil {
			log.Printf("Database-backed packet log initialized with %d records", count)
		}

		return recorder, db, pruner
	}

	// Fall back to the in-memory ring
	return packetlog.NewMemoryRecorder(0), nil, nil
}

// Run starts the tracker and blocks until the context is cancelled
func (t *Tracker) Run(ctx context.Context) error {
	log.Printf("MeshTrack v%s starting", VERSION)
	log.Printf("Callsign: %s (node %s)", t.config.GetCallsign(), t.config.GetNodeID())
	if profile, ok := t.radio.ActiveProfile(); ok {
		log.Printf("Radio: %s, PWR=%d dBm", profile, profile.TxPowerDbm)
	}
	if t.config.HasPosition() {
		log.Printf("Position: %.4f, %.4f (height %d m), beacon rate=%ds keepalive=%ds min-distance=%dm",
			t.config.GetLatitude(), t.config.GetLongitude(), t.config.GetHeight(),
			t.config.GetBeaconRate(), t.config.GetBeaconKeepalive(), t.config.GetBeaconMinDistance())
	} else {
		log.Printf("Position: not configured, position beaconing disabled")
	}
	if msg := t.config.GetTextMessage(); msg != "" {
		log.Printf("Text message: %q every %ds to %s",
			msg, t.config.GetTextInterval(), t.config.GetTextDestination())
	}
	if comment := t.config.GetComment(); comment != "" {
		log.Printf("Comment: %s", comment)
	}

	if t.pruner != nil {
		go t.pruner.Start(ctx)
	}

	if err := t.beacon.Start(ctx); err != nil {
		return fmt.Errorf("failed to start beacon: %v", err)
	}

	statsTicker := time.NewTicker(STATS_INTERVAL)
	defer statsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.shutdown()
			return nil
		case <-statsTicker.C:
			t.logStats()
		}
	}
}

// logStats prints the periodic packet counters
func (t *Tracker) logStats() {
	tx, rx, err := t.recorder.Counts()
	if err != nil {
		log.Printf("Stats unavailable: %v", err)
		return
	}
	log.Printf("Stats: %d frames transmitted, %d received", tx, rx)
}

func (t *Tracker) shutdown() {
	log.Printf("Shutting down...")

	t.beacon.Stop()

	if err := t.radio.Close(); err != nil {
		log.Printf("Radio close error: %v", err)
	}
	if err := t.recorder.Close(); err != nil {
		log.Printf("Packet log close error: %v", err)
	}
	if t.db != nil {
		if err := t.db.Close(); err != nil {
			log.Printf("Database close error: %v", err)
		}
	}
}

// DryRun builds one frame of each kind and prints it without keying up
func (t *Tracker) DryRun() error {
	fmt.Printf("MeshTrack v%s dry run\n", VERSION)

	if t.config.HasPosition() {
		latitude := t.config.GetLatitude()
		longitude := t.config.GetLongitude()
		fix := meshcom.Fix{Latitude: &latitude, Longitude: &longitude}
		if height := t.config.GetHeight(); height != 0 {
			meters := float64(height)
			fix.Altitude = &meters
		}

		frame, err := t.encoder.Build(fix)
		if err != nil {
			return fmt.Errorf("position frame: %v", err)
		}
		fmt.Printf("Position frame (%d bytes): %s\n", len(frame), hex.EncodeToString(frame))
	} else {
		fmt.Println("Position frame: skipped, no position configured")
	}

	message := t.config.GetTextMessage()
	if message == "" {
		message = t.config.GetComment()
	}
	if message == "" {
		fmt.Println("Text frame: skipped, no text message or comment configured")
		return nil
	}

	textFrame := meshcom.TextFrame{
		MessageID:    1,
		MaxHop:       meshcom.DefaultMaxHopText,
		Source:       t.encoder.SourceCall,
		Dest:         t.config.GetTextDestination(),
		Text:         message,
		HardwareID:   t.config.GetHardwareID(),
		ModulationID: t.config.GetModulationID(),
	}
	data, err := textFrame.Build()
	if err != nil {
		return fmt.Errorf("text frame: %v", err)
	}
	fmt.Printf("Text frame (%d bytes): %s\n", len(data), hex.EncodeToString(data))

	return nil
}

func main() {
	var (
		configFile = flag.String("config", getDefaultConfig(), "Configuration file path")
		version    = flag.Bool("version", false, "Show version information")
		dryRun     = flag.Bool("dry-run", false, "Build one frame of each kind, print it and exit")
	)
	flag.Parse()

	if *version {
		fmt.Printf("MeshTrack v%s\n", VERSION)
		return
	}

	// Handle non-flag arguments (config file)
	if flag.NArg() > 0 {
		*configFile = flag.Arg(0)
	}

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("MeshTrack v%s starting with config: %s", VERSION, *configFile)

	tracker, err := NewTracker(*configFile)
	if err != nil {
		log.Fatalf("Failed to create tracker: %v", err)
	}

	if *dryRun {
		if err := tracker.DryRun(); err != nil {
			log.Fatalf("Dry run failed: %v", err)
		}
		return
	}

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	if err := tracker.Run(ctx); err != nil {
		log.Fatalf("Tracker error: %v", err)
	}

	log.Printf("MeshTrack stopped")
}

// getDefaultConfig returns the default configuration file path
func getDefaultConfig() string {
	// Check for config file in current directory first
	if _, err := os.Stat("MeshTrack.ini"); err == nil {
		return "MeshTrack.ini"
	}

	// Check system location
	systemConfig := "/etc/MeshTrack.ini"
	if _, err := os.Stat(systemConfig); err == nil {
		return systemConfig
	}

	// Default to current directory
	return "MeshTrack.ini"
}
