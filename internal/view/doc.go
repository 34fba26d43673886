// Package view renders collected build statuses for a terminal.
//
// The status-bar text produced by [buildbar.Render] is meant for a menu-bar
// host. This package produces the same information as an aligned, coloured
// table for people running buildbar by hand or in watch mode.
package view
