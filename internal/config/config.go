package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config represents the meshtrack node configuration
type Config struct {
	filename string

	// Info section
	callsign     string
	nodeID       string
	symbol       string
	latitude     float64
	longitude    float64
	hasLatitude  bool
	hasLongitude bool
	height       int32
	comment      string

	// Radio section
	radioProfile   string
	radioPower     uint8
	radioFrequency uint32

	// Beacon section
	beaconRate        uint32
	beaconKeepalive   uint32
	beaconMinDistance uint32
	beaconMaxHop      uint8
	textMessage       string
	textDestination   string
	textInterval      uint32

	// MeshCom section
	hardwareID         uint8
	modulationID       uint8
	firmwareVersion    uint8
	firmwareSubversion uint8

	// Database section
	databaseEnabled       bool
	databasePath          string
	databaseRetentionDays uint32
	databaseDebug         bool

	// Log section
	logDebug bool
}

// NewConfig creates a new configuration instance
func NewConfig(filename string) *Config {
	return &Config{
		filename: filename,
		// Set reasonable defaults
		symbol:       "L>",
		radioProfile: "mesh",
		radioPower:   23,

		beaconRate:        15,
		beaconKeepalive:   300,
		beaconMinDistance: 100,
		beaconMaxHop:      2,
		textDestination:   "*",
		textInterval:      15,

		hardwareID:   4,
		modulationID: 3,

		// Database defaults
		databaseEnabled:       false,
		databasePath:          "data/packets.db",
		databaseRetentionDays: 7,
		databaseDebug:         false,
	}
}

// Load loads configuration from the specified file
func (c *Config) Load() error {
	file, err := os.Open(c.filename)
	if err != nil {
		return fmt.Errorf("failed to open config file %s: %v", c.filename, err)
	}
	defer file.Close()

	return c.parseINI(file)
}

// LoadFromString loads configuration from a string (useful for testing)
func (c *Config) LoadFromString(data string) error {
	return c.parseINIString(data)
}

func (c *Config) parseINI(file *os.File) error {
	scanner := bufio.NewScanner(file)
	return c.parseINIScanner(scanner)
}

func (c *Config) parseINIString(data string) error {
	scanner := bufio.NewScanner(strings.NewReader(data))
	return c.parseINIScanner(scanner)
}

func (c *Config) parseINIScanner(scanner *bufio.Scanner) error {
	var currentSection string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		// Check for section header
		if line[0] == '[' && line[len(line)-1] == ']' {
			currentSection = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}

		// Parse key=value pairs
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Parse based on current section
		switch currentSection {
		case "Info":
			c.parseInfoSection(key, value)
		case "Radio":
			c.parseRadioSection(key, value)
		case "Beacon":
			c.parseBeaconSection(key, value)
		case "MeshCom":
			c.parseMeshComSection(key, value)
		case "Database":
			c.parseDatabaseSection(key, value)
		case "Log":
			c.parseLogSection(key, value)
		}
	}

	return scanner.Err()
}

func (c *Config) parseInfoSection(key, value string) {
	switch key {
	case "Callsign":
		c.callsign = value
	case "NodeID":
		c.nodeID = value
	case "Symbol":
		c.symbol = value
	case "Latitude":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			c.latitude = v
			c.hasLatitude = true
		}
	case "Longitude":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			c.longitude = v
			c.hasLongitude = true
		}
	case "Height":
		if v, err := strconv.ParseInt(value, 10, 32); err == nil {
			c.height = int32(v)
		}
	case "Comment":
		c.comment = value
	}
}

func (c *Config) parseRadioSection(key, value string) {
	switch key {
	case "Profile":
		c.radioProfile = value
	case "Power":
		if v, err := strconv.ParseUint(value, 10, 8); err == nil {
			c.radioPower = uint8(v)
		}
	case "Frequency":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.radioFrequency = uint32(v)
		}
	}
}

func (c *Config) parseBeaconSection(key, value string) {
	switch key {
	case "Rate":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.beaconRate = uint32(v)
		}
	case "Keepalive":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.beaconKeepalive = uint32(v)
		}
	case "MinDistance":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.beaconMinDistance = uint32(v)
		}
	case "MaxHop":
		if v, err := strconv.ParseUint(value, 10, 8); err == nil {
			c.beaconMaxHop = uint8(v)
		}
	case "TextMessage":
		c.textMessage = value
	case "TextDestination":
		c.textDestination = value
	case "TextInterval":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.textInterval = uint32(v)
		}
	}
}

func (c *Config) parseMeshComSection(key, value string) {
	switch key {
	case "HardwareID":
		if v, err := strconv.ParseUint(value, 10, 8); err == nil {
			c.hardwareID = uint8(v)
		}
	case "ModulationID":
		if v, err := strconv.ParseUint(value, 10, 8); err == nil {
			c.modulationID = uint8(v)
		}
	case "FirmwareVersion":
		if v, err := strconv.ParseUint(value, 10, 8); err == nil {
			c.firmwareVersion = uint8(v)
		}
	case "FirmwareSubversion":
		if v, err := strconv.ParseUint(value, 10, 8); err == nil {
			c.firmwareSubversion = uint8(v)
		}
	}
}

func (c *Config) parseDatabaseSection(key, value string) {
	switch key {
	case "Enabled":
		c.databaseEnabled = c.parseBool(value)
	case "Path":
		c.databasePath = value
	case "RetentionDays":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.databaseRetentionDays = uint32(v)
		}
	case "Debug":
		c.databaseDebug = c.parseBool(value)
	}
}

func (c *Config) parseLogSection(key, value string) {
	switch key {
	case "Debug":
		c.logDebug = c.parseBool(value)
	}
}

func (c *Config) parseBool(value string) bool {
	return value == "1" || strings.ToLower(value) == "true" || strings.ToLower(value) == "yes"
}

// Getter methods for Info section
func (c *Config) GetCallsign() string  { return c.callsign }
func (c *Config) GetNodeID() string    { return c.nodeID }
func (c *Config) GetSymbol() string    { return c.symbol }
func (c *Config) GetLatitude() float64 { return c.latitude }
func (c *Config) GetLongitude() float64 { return c.longitude }
func (c *Config) GetHeight() int32     { return c.height }
func (c *Config) GetComment() string   { return c.comment }

// HasPosition reports whether both Latitude and Longitude were present in
// the Info section. Height alone does not make a position.
func (c *Config) HasPosition() bool { return c.hasLatitude && c.hasLongitude }

// Getter methods for Radio section
func (c *Config) GetRadioProfile() string    { return c.radioProfile }
func (c *Config) GetRadioPower() uint8       { return c.radioPower }
func (c *Config) GetRadioFrequency() uint32  { return c.radioFrequency }

// Getter methods for Beacon section
func (c *Config) GetBeaconRate() uint32        { return c.beaconRate }
func (c *Config) GetBeaconKeepalive() uint32   { return c.beaconKeepalive }
func (c *Config) GetBeaconMinDistance() uint32 { return c.beaconMinDistance }
func (c *Config) GetBeaconMaxHop() uint8       { return c.beaconMaxHop }
func (c *Config) GetTextMessage() string       { return c.textMessage }
func (c *Config) GetTextDestination() string   { return c.textDestination }
func (c *Config) GetTextInterval() uint32      { return c.textInterval }

// Getter methods for MeshCom section
func (c *Config) GetHardwareID() uint8         { return c.hardwareID }
func (c *Config) GetModulationID() uint8       { return c.modulationID }
func (c *Config) GetFirmwareVersion() uint8    { return c.firmwareVersion }
func (c *Config) GetFirmwareSubversion() uint8 { return c.firmwareSubversion }

// Getter methods for Database section
func (c *Config) GetDatabaseEnabled() bool         { return c.databaseEnabled }
func (c *Config) GetDatabasePath() string          { return c.databasePath }
func (c *Config) GetDatabaseRetentionDays() uint32 { return c.databaseRetentionDays }
func (c *Config) GetDatabaseDebug() bool           { return c.databaseDebug }

// Getter methods for Log section
func (c *Config) GetLogDebug() bool { return c.logDebug }
