/*
Package session implements the edit-session lifecycle for a diagram.

An edit session is the unit of editability: the interaction layer honors
mutating gestures only while one is open. The Manager here opens, saves,
cancels and resumes sessions against a persistence store, and optionally
holds a distributed lock on the diagram so replicas cannot edit it
concurrently.
*/
package session
