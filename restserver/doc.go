// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restserver publishes a mapper.Container, or a single
// mapper.Mapper, as a REST service.  The restclient package is a
// matching client.
//
// URL Scheme
//
// Every resource in a container is mounted under its endpoint (its
// Endpoint() if it has one, otherwise its registered name), and each
// resource gets the same seven routes:
//
//     GET    /{resource}        findAll
//     POST   /{resource}        create, or createMany for an array body
//     PUT    /{resource}        updateAll, or updateMany for an array body
//     DELETE /{resource}        destroyAll
//     GET    /{resource}/{id}   find
//     PUT    /{resource}/{id}   update
//     DELETE /{resource}/{id}   destroy
//
// Query Strings
//
// Mount installs a query parser ahead of the routes; see the directive
// package for the where, orderBy, sort, and with conventions.  The
// parsed query is passed to findAll, updateAll, and destroyAll, and
// the with directive is passed to every operation as an option.
//
// Request Pipeline
//
// Each route runs three stages: an optional per-operation request
// hook, the action (by default, the matching Mapper method), and the
// response stage.  The response stage writes the operation's status
// code (200, 201 for creates, 204 for destroys, unless configured
// otherwise) and the serialized result, or hands the whole response
// to a configured response hook.  Any stage may abort by passing an
// error to its continuation; errors go to Config.ErrorHandler, which
// by default is restdata.WriteError.
//
// Hooks run on the request's goroutine and must call their
// continuation before returning.
package restserver
