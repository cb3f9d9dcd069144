// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

/*
Package config loads layered application configuration with Koanf v2.

Precedence, lowest to highest:

 1. Built-in defaults (defaultConfig)
 2. YAML config file, found via CONFIG_PATH or the default search paths
 3. Environment variables, mapped through an explicit allow-list

The environment mapping is deliberately a closed table: a variable with no
entry in envTransformFunc is ignored rather than guessed at, so unrelated
environment noise cannot flip settings.

Scheduler settings here only seed the persisted scheduler document on first
start. After that the scheduler endpoint owns them; restarting with
different SCHEDULER_* variables does not override stored runtime changes.
*/
package config
