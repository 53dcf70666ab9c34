/*
Package controller implements the allocation controller.

The controller converts the ratio between the eligible user and hedger pool
sizes into an optimal allocation and moves the live allocation toward it by
a bounded step on every invocation. While the live allocation differs from
the last computed target the controller is Adjusting, otherwise it is Stable.

Parameters are kept as a gconf configuration of the "controller" package and
can be changed by governance. Changes apply from the next invocation.
*/
package controller
