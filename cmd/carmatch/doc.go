// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

/*
Command carmatch runs CarMatch operations from the command line against the
same catalog, enrichment cache and configuration as the server.

	carmatch recommend --budget 25000 --passengers 4 --weight fuel_efficiency=0.4 --weight acceleration=0.1
	carmatch vehicle civic_2018
	carmatch vehicle civic_2018 wrx_2018
	carmatch safety --make Honda --model Civic --year 2018
	carmatch enrich [--dry-run]

Every command prints JSON, or YAML with --output yaml. Logs go to stderr.
Configuration is read the same way as the server: --config, then CONFIG_PATH
and the default locations, then environment variables.

Exit status is 0 on success, 1 when an NHTSA lookup or a batch enrichment
failed, and 2 for configuration or input errors.
*/
package main
