// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package mappertest

import (
	"github.com/diffeo/go-restmount/mapper"
)

// TestCreateFind performs basic record lifetime tests.
func (s *Suite) TestCreateFind() {
	record, err := s.Users.Create(s.Ctx, mapper.Record{"name": "alice"}, nil)
	s.Require().NoError(err)
	id, hasID := UserDefinition.ID(record)
	s.Require().True(hasID)
	s.NotEmpty(id)
	s.Equal("alice", record["name"])

	found, err := s.Users.Find(s.Ctx, id, nil)
	if s.NoError(err) {
		s.Equal("alice", found["name"])
		s.Equal(id, found["id"])
	}

	err = s.Users.Destroy(s.Ctx, id, nil)
	s.NoError(err)

	_, err = s.Users.Find(s.Ctx, id, nil)
	s.Equal(mapper.ErrNoSuchRecord{Resource: "user", ID: id}, err)
}

// TestCreateWithID checks that a caller-supplied identifier is kept.
func (s *Suite) TestCreateWithID() {
	record, err := s.Users.Create(s.Ctx, mapper.Record{"id": "u1", "name": "bob"}, nil)
	s.Require().NoError(err)
	s.Equal("u1", record["id"])

	found, err := s.Users.Find(s.Ctx, "u1", nil)
	if s.NoError(err) {
		s.Equal("bob", found["name"])
	}
}

// TestFindMissing checks the error for an unknown identifier.
func (s *Suite) TestFindMissing() {
	_, err := s.Users.Find(s.Ctx, "nope", nil)
	s.Equal(mapper.ErrNoSuchRecord{Resource: "user", ID: "nope"}, err)
}

// TestCreateMany creates several records at once.
func (s *Suite) TestCreateMany() {
	records, err := s.Users.CreateMany(s.Ctx, []mapper.Record{
		{"name": "a"},
		{"name": "b"},
		{"name": "c"},
	}, nil)
	s.Require().NoError(err)
	s.Equal([]string{"a", "b", "c"}, names(records))

	all, err := s.Users.FindAll(s.Ctx, mapper.Query{}, nil)
	if s.NoError(err) {
		s.ElementsMatch([]string{"a", "b", "c"}, names(all))
	}
}

// TestFindAllEmpty checks that an empty resource returns an empty
// slice.
func (s *Suite) TestFindAllEmpty() {
	all, err := s.Users.FindAll(s.Ctx, mapper.Query{}, nil)
	if s.NoError(err) {
		s.NotNil(all)
		s.Len(all, 0)
	}
}

// TestFindAllQueries exercises filtering, ordering, and paging.
func (s *Suite) TestFindAllQueries() {
	roles := map[string]string{
		"alice": "admin",
		"bob":   "user",
		"carol": "admin",
		"dave":  "user",
	}
	s.createUsers(roles, "bob", "dave", "alice", "carol")

	records, err := s.Users.FindAll(s.Ctx, mapper.Query{
		"where":   map[string]interface{}{"role": "admin"},
		"orderBy": []interface{}{"name"},
	}, nil)
	if s.NoError(err) {
		s.Equal([]string{"alice", "carol"}, names(records))
	}

	records, err = s.Users.FindAll(s.Ctx, mapper.Query{
		"role":    "user",
		"orderBy": []interface{}{[]interface{}{"name", "DESC"}},
	}, nil)
	if s.NoError(err) {
		s.Equal([]string{"dave", "bob"}, names(records))
	}

	records, err = s.Users.FindAll(s.Ctx, mapper.Query{
		"where": map[string]interface{}{
			"name": map[string]interface{}{"in": []interface{}{"alice", "dave"}},
		},
		"orderBy": []interface{}{"name"},
	}, nil)
	if s.NoError(err) {
		s.Equal([]string{"alice", "dave"}, names(records))
	}

	records, err = s.Users.FindAll(s.Ctx, mapper.Query{
		"orderBy": []interface{}{"name"},
		"offset":  "1",
		"limit":   "2",
	}, nil)
	if s.NoError(err) {
		s.Equal([]string{"bob", "carol"}, names(records))
	}
}

// TestFindAllBadQuery checks that a where clause must be an object.
func (s *Suite) TestFindAllBadQuery() {
	s.createUsers(nil, "alice")
	_, err := s.Users.FindAll(s.Ctx, mapper.Query{"where": "not-json"}, nil)
	s.IsType(mapper.ErrBadQuery{}, err)
}

// TestFindAllNegativePaging checks that paging values must not be
// negative.
func (s *Suite) TestFindAllNegativePaging() {
	s.createUsers(nil, "alice", "bob")
	_, err := s.Users.FindAll(s.Ctx, mapper.Query{"offset": "-1"}, nil)
	s.Equal(mapper.ErrBadQuery{Key: "offset", Reason: "negative"}, err)
	_, err = s.Users.FindAll(s.Ctx, mapper.Query{"limit": "-1"}, nil)
	s.Equal(mapper.ErrBadQuery{Key: "limit", Reason: "negative"}, err)
}

// TestUpdate merges new properties into one record.
func (s *Suite) TestUpdate() {
	ids := s.createUsers(map[string]string{"alice": "user"}, "alice")

	record, err := s.Users.Update(s.Ctx, ids[0], mapper.Record{"role": "admin"}, nil)
	if s.NoError(err) {
		s.Equal("alice", record["name"])
		s.Equal("admin", record["role"])
	}

	found, err := s.Users.Find(s.Ctx, ids[0], nil)
	if s.NoError(err) {
		s.Equal("admin", found["role"])
	}

	_, err = s.Users.Update(s.Ctx, ids[0], mapper.Record{"id": "other"}, nil)
	s.Equal(mapper.ErrChangedID, err)

	_, err = s.Users.Update(s.Ctx, "nope", mapper.Record{"role": "x"}, nil)
	s.Equal(mapper.ErrNoSuchRecord{Resource: "user", ID: "nope"}, err)
}

// TestUpdateAll updates every record matching a query.
func (s *Suite) TestUpdateAll() {
	roles := map[string]string{"alice": "admin", "bob": "user", "carol": "admin"}
	s.createUsers(roles, "alice", "bob", "carol")

	records, err := s.Users.UpdateAll(s.Ctx, mapper.Record{"active": true},
		mapper.Query{"where": map[string]interface{}{"role": "admin"}}, nil)
	if s.NoError(err) {
		s.ElementsMatch([]string{"alice", "carol"}, names(records))
	}

	records, err = s.Users.FindAll(s.Ctx, mapper.Query{"active": true}, nil)
	if s.NoError(err) {
		s.ElementsMatch([]string{"alice", "carol"}, names(records))
	}
}

// TestUpdateMany updates several records by their own identifiers.
func (s *Suite) TestUpdateMany() {
	ids := s.createUsers(nil, "alice", "bob")

	records, err := s.Users.UpdateMany(s.Ctx, []mapper.Record{
		{"id": ids[0], "role": "admin"},
		{"id": ids[1], "role": "user"},
	}, nil)
	if s.NoError(err) && s.Len(records, 2) {
		s.Equal("admin", records[0]["role"])
		s.Equal("user", records[1]["role"])
	}

	_, err = s.Users.UpdateMany(s.Ctx, []mapper.Record{{"role": "x"}}, nil)
	s.Equal(mapper.ErrMissingID, err)
}

// TestDestroyMissing checks that destroying a missing record is fine.
func (s *Suite) TestDestroyMissing() {
	s.NoError(s.Users.Destroy(s.Ctx, "nope", nil))
}

// TestDestroyAll deletes only the records matching a query.
func (s *Suite) TestDestroyAll() {
	roles := map[string]string{"alice": "admin", "bob": "user", "carol": "admin"}
	s.createUsers(roles, "alice", "bob", "carol")

	err := s.Users.DestroyAll(s.Ctx, mapper.Query{"role": "admin"}, nil)
	s.Require().NoError(err)

	records, err := s.Users.FindAll(s.Ctx, mapper.Query{}, nil)
	if s.NoError(err) {
		s.Equal([]string{"bob"}, names(records))
	}
}

// TestIDAttribute checks a resource whose identifier is not "id".
func (s *Suite) TestIDAttribute() {
	record, err := s.Todos.Create(s.Ctx, mapper.Record{"title": "write tests"}, nil)
	s.Require().NoError(err)
	key, hasKey := TodoDefinition.ID(record)
	s.Require().True(hasKey)
	s.NotContains(record, "id")

	found, err := s.Todos.Find(s.Ctx, key, nil)
	if s.NoError(err) {
		s.Equal("write tests", found["title"])
	}

	_, err = s.Todos.Create(s.Ctx, mapper.Record{"key": "fixed", "title": "x"}, nil)
	s.Require().NoError(err)
	found, err = s.Todos.Find(s.Ctx, "fixed", nil)
	if s.NoError(err) {
		s.Equal("x", found["title"])
	}

	// The user resource is untouched
	users, err := s.Users.FindAll(s.Ctx, mapper.Query{}, nil)
	if s.NoError(err) {
		s.Empty(users)
	}
}

// TestToJSON checks that serialized records are independent copies.
func (s *Suite) TestToJSON() {
	record, err := s.Users.Create(s.Ctx, mapper.Record{
		"name": "alice",
		"tags": []interface{}{"a"},
	}, nil)
	s.Require().NoError(err)

	out, err := s.Users.ToJSON(record, nil)
	s.Require().NoError(err)
	if s.IsType(map[string]interface{}{}, out) {
		m := out.(map[string]interface{})
		s.Equal("alice", m["name"])
		m["name"] = "changed"
	}
	s.Equal("alice", record["name"])
}
