// config.go - Haupt-Konfigurationsfunktionen fuer opexec
//
// Dieses Modul enthaelt:
// - LogLevel: Gibt Log-Level zurueck (OPEXEC_DEBUG)
// - Plans: Gibt Plan-Verzeichnis zurueck (OPEXEC_PLANS)
// - Var: Liest und bereinigt eine Environment-Variable
//
// Weitere Konfigurationen sind ausgelagert:
// - config_features.go: Dispatch-, Executor- und Bitmap-Einstellungen
// - config_utils.go: Utility-Funktionen und AsMap/Values
package envconfig

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via OPEXEC_DEBUG
// Werte: 0/false = INFO (Default), 1/true = DEBUG, 2 = TRACE
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("OPEXEC_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// Plans gibt das Verzeichnis fuer relative Plan-Pfade zurueck
// Konfigurierbar via OPEXEC_PLANS
// Default: aktuelles Arbeitsverzeichnis
func Plans() string {
	if s := Var("OPEXEC_PLANS"); s != "" {
		return s
	}

	return "."
}

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
