package utils

// Amount is a money amount in the network's base unit. Balances,
// deposits, fees and route distances are all signed 64-bit integers.
type Amount int64
