/*

Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each package keeps a single configuration object in the database, stored under
the "_c:<package name>" key. A configuration is always validated before it is
written, so that loading it never returns an invalid value. Configurations are
created from the genesis file and later changed by governance operations.

*/
package gconf
