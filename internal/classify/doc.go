// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

// Package classify canonicalizes raw annotation labels into stable class
// keys and classifies projects and classes against fixed keyword tables.
//
// Three classifiers live here:
//
//   - Normalize: label string -> class key ("Cavity 2" and "cavity" merge)
//   - ModalityDetector: project title -> modality tag (OPG, Bitewing, ...)
//   - CategoryCatalog: class name -> coarse category ("Pathology", ...)
//
// The keyword tables are explicit ordered configuration values rather than
// scattered conditionals, so classification rules are unit-testable in
// isolation from extraction logic and can be swapped per deployment.
package classify
