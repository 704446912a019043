// Package testsupport holds helpers shared by package tests: temp-dir backed
// configs, stub executables on PATH, sized files and synthetic video frames.
package testsupport
