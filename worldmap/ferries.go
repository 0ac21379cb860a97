package worldmap

// stageE runs Stage E, ferry augmentation: for each definition ferry
// that has a matching sector ferry item, resolve its connection
// endpoints by looking up each connection's token in the sector ferry
// items, then that item's node position.
func stageE(st *assemblyState, defs DefinitionSet, locale map[string]string) []Ferry {
	var ferries []Ferry

	for token, def := range defs.Ferries {
		item, ok := st.ferryItemsByToken[token]
		if !ok {
			continue
		}
		node, ok := firstNode(item, st.nodes)
		if !ok {
			continue
		}

		f := Ferry{
			Token:   token,
			Name:    resolveLabel(locale, def.Name, def.NameLocalized),
			IsTrain: def.IsTrain,
			X:       node.X,
			Y:       node.Y,
		}

		for _, conn := range def.Connections {
			connItem, ok := st.ferryItemsByToken[conn.Token]
			if !ok {
				st.warn("worldmap: ferry %q connection references unknown ferry %q", token, conn.Token)
				continue
			}
			connNode, ok := firstNode(connItem, st.nodes)
			if !ok {
				continue
			}
			f.Connections = append(f.Connections, FerryConnection{Token: conn.Token, X: connNode.X, Y: connNode.Y})
		}

		ferries = append(ferries, f)
	}

	return ferries
}
