package model

// DefaultUnit is the unit of measure assumed when a draft omits one.
const DefaultUnit = "ea"
