package auth

import "math/rand/v2"

var adjectives = []string{
	"Happy", "Lucky", "Sunny", "Clever", "Brave", "Gentle", "Jolly", "Kind",
	"Lively", "Nice", "Proud", "Silly", "Witty", "Zany", "Calm", "Eager",
	"Fancy", "Glamorous", "Helpful", "Merry",
}

var animals = []string{
	"Panda", "Koala", "Lion", "Tiger", "Bear", "Rabbit", "Fox", "Wolf",
	"Elephant", "Giraffe", "Zebra", "Monkey", "Penguin", "Owl", "Hawk",
	"Eagle", "Dolphin", "Whale", "Shark", "Octopus",
}

// GenerateDisplayName picks a pseudonymous "Adjective Animal" label assigned
// at signup. Not unique and not meant to be: it is a display label, never
// an identity.
func GenerateDisplayName() string {
	return adjectives[rand.IntN(len(adjectives))] + " " + animals[rand.IntN(len(animals))]
}
