// Command sqlvars prints the SQLITE_MAX_VARIABLE_NUMBER of the linked
// SQLite library, inferred by binary search against a scratch in-memory
// database. Useful for sizing bulk statements in deployment tooling.
package main
